// Package extractors provides implementations of the PageExtractor interface.
// Each extractor knows how to pull per-page text out of one document format.
package extractors
