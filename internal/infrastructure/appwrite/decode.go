package appwrite

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"freshsave/internal/infrastructure/storage/docstore"
)

// wireList mirrors the list response; documents are decoded one by one.
type wireList struct {
	Total     int               `json:"total"`
	Documents []json.RawMessage `json:"documents"`
}

func decodeInto(raw []byte, out any) error {
	switch dst := out.(type) {
	case *docstore.Document:
		doc, err := decodeDocument(raw)
		if err != nil {
			return err
		}
		*dst = doc
		return nil
	case *docstore.DocumentList:
		var wl wireList
		if err := json.Unmarshal(raw, &wl); err != nil {
			return err
		}
		list := docstore.DocumentList{Total: wl.Total, Documents: make([]docstore.Document, 0, len(wl.Documents))}
		for _, r := range wl.Documents {
			doc, err := decodeDocument(r)
			if err != nil {
				return err
			}
			list.Documents = append(list.Documents, doc)
		}
		*dst = list
		return nil
	}
	return json.Unmarshal(raw, out)
}

// decodeDocument splits Appwrite's flat document into system attributes
// ("$"-prefixed) and user data.
func decodeDocument(raw []byte) (docstore.Document, error) {
	all, err := docstore.DecodeFields(raw)
	if err != nil {
		return docstore.Document{}, err
	}

	doc := docstore.Document{
		ID:           all.GetString("$id"),
		CollectionID: all.GetString("$collectionId"),
		Data:         make(docstore.Fields, len(all)),
	}
	if doc.ID == "" {
		return docstore.Document{}, fmt.Errorf("document without $id")
	}
	doc.CreatedAt = parseSystemTime(all.GetString("$createdAt"))
	doc.UpdatedAt = parseSystemTime(all.GetString("$updatedAt"))

	for k, v := range all {
		if strings.HasPrefix(k, "$") {
			continue
		}
		doc.Data[k] = v
	}
	return doc, nil
}

func parseSystemTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
