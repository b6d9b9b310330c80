// Package banner renders the startup banner shown on stderr.
package banner

import "fmt"

const art = `
  ___  ___  __ _| |_ __ _  __ _
 / __|/ _ \/ _' | __/ _' |/ _' |
 \__ \  __/ (_| | || (_| | (_| |
 |___/\___|\__, |\__\__,_|\__, |
              |_|         |___/
`

// Banner returns the banner text for the given version.
func Banner(version string) string {
	return fmt.Sprintf("%s  averaged perceptron sequence tagger %s\n\n", art, version)
}
