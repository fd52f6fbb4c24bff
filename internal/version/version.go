// ABOUTME: Build and product identification
// ABOUTME: Reported in mDNS TXT records, startup logs and -version output
package version

// Version is the release version
const Version = "0.3.0"

// Product is the product name
const Product = "pcmscope"

// Manufacturer identifies the maintainers
const Manufacturer = "pcmscope authors"

// String returns "product/version"
func String() string {
	return Product + "/" + Version
}
