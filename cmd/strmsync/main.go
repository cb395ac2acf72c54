// Command strmsync mirrors an IPTV playlist into a tree of pointer files
// that a media server can index.
package main

func main() {
	Execute()
}
