// Package ocr reads the date and time stamp that tram cameras burn into
// their frames, using the Tesseract OCR engine (via gosseract/v2).
//
// # Prerequisites
//
// Tesseract is only linked on Linux with cgo enabled. Other builds get a
// reader that always fails with ErrOCRUnavailable. Tesseract and its
// language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// A custom tessdata directory can be set with Options.TessdataDir.
//
// # Preparation
//
// Stamp regions are small, so they are cropped, scaled to a fixed height,
// converted to grayscale, contrast-stretched and inverted when the text is
// light on dark. Tesseract runs in single-line mode with a whitelist of
// digits and date separators.
//
// # Output
//
// Recognized text that parses as a date and time is returned normalized to
// "2006-01-02 15:04:05"; anything else is returned trimmed but otherwise
// unchanged.
package ocr
