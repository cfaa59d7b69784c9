// Package assets holds the document template and print styles.
//
// The built-in set is embedded:
//
//	styles/default.css
//	styles/monochrome.css
//	templates/document.html
//
// A custom directory with the same layout may override any single file;
// AssetResolver looks there first and falls back to the built-in copy.
// Asset names are bare words, so a name can never address a file outside
// its directory.
package assets
