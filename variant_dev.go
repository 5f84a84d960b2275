//go:build !prod

package seizureplot

func openBrowser(url string) {
	// In dev mode we don't open the browser, the developer already has one
	// pointed at the server.
}
