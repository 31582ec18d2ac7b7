// Command likesd serves the likes API over HTTP.
package main

func main() {
	Execute()
}
