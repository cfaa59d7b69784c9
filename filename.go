package invoicepdf

import "strings"

// DefaultCustomerPlaceholder replaces an empty customer name in filenames.
const DefaultCustomerPlaceholder = "customer"

// pathUnsafe replaces characters that would escape the output directory or
// truncate the name.
var pathUnsafe = strings.NewReplacer("/", "_", "\\", "_", "\x00", "_")

// Filename builds the export name {docType}_{customer}_{issueDate}.pdf.
// An empty customer name becomes "customer". Other components are used as
// typed, with path separators replaced.
func Filename(docType, customerName, issueDate string) string {
	if customerName == "" {
		customerName = DefaultCustomerPlaceholder
	}
	return pathUnsafe.Replace(docType) + "_" +
		pathUnsafe.Replace(customerName) + "_" +
		pathUnsafe.Replace(issueDate) + ".pdf"
}
