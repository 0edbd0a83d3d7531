// Command freshsavectl is the operator CLI: it seeds, inspects, exports
// and imports the inventory collection of any configured store.
package main

func main() {
	Execute()
}
