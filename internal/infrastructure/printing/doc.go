// Package printing renders the traceability matrix to PDF.
//
// MatrixPDFRenderer fills an html/template with a matrix and hands the
// page to a PDFRenderer. ChromedpRenderer is the production PDFRenderer:
// it drives headless Chrome over the DevTools protocol, either launching
// a local browser or attaching to a remote one (printing.remote_url).
package printing
