// Package cli implements the backlight command-line interface.
//
// The binary takes at most one word and maps it to an operation:
//
//	backlight            - toggle the backlight (also any unknown word)
//	backlight start      - start the PicCap service
//	backlight stop       - stop the PicCap service
//	backlight status     - print whether the service is running
//	backlight setup      - run the setup wizard
//	backlight settings   - edit or print the settings
//	backlight discover   - list LG TVs on the network
//
// Falling back to toggle lets a remote button invoke the binary with
// whatever argument its host application passes.
//
// Settings are loaded fresh on every invocation and handed to the
// Dispatcher by value; nothing is cached between runs. The Dispatcher
// depends only on small interfaces so each operation can be tested with
// fakes.
package cli
