// Command player is a terminal preview player. It loads a playlist, an album
// or a search result from the Spotify catalog and plays each track's preview
// clip, asking the preview relay for an enhanced clip first.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
