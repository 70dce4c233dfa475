package mdconvert

import (
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/rohmanhakim/legaldata/internal/metadata"
	"github.com/rohmanhakim/legaldata/pkg/failure"
	"golang.org/x/net/html"
)

/*
Renders a fragment of a detail page (e.g. the legislation "details" block)
to Markdown so the sidecar keeps its structure as readable lines.

Conversion Rules
- Tables converted structurally (GFM)
- Links preserved as-is (no resolution)
- DOM order preserved
*/

// ConvertRule converts an HTML node to Markdown.
type ConvertRule interface {
	Convert(node *html.Node) (ConversionResult, failure.ClassifiedError)
}

// Compile-time interface check
var _ ConvertRule = (*StrictConversionRule)(nil)

type StrictConversionRule struct {
	metadataSink metadata.MetadataSink
	conv         *converter.Converter
}

func NewRule(metadataSink metadata.MetadataSink) *StrictConversionRule {
	return &StrictConversionRule{
		metadataSink: metadataSink,
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

func (s *StrictConversionRule) Convert(node *html.Node) (ConversionResult, failure.ClassifiedError) {
	result, err := s.convert(node)
	if err != nil {
		s.metadataSink.RecordError(
			time.Now(),
			"mdconvert",
			"StrictConversionRule.Convert",
			mapConversionErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{},
		)
		return ConversionResult{}, err
	}
	return result, nil
}

func (s *StrictConversionRule) convert(node *html.Node) (ConversionResult, *ConversionError) {
	if node == nil {
		return ConversionResult{}, &ConversionError{
			Message:   "cannot convert nil HTML node",
			Retryable: false,
			Cause:     ErrCauseNilNode,
		}
	}

	markdown, err := s.conv.ConvertNode(node)
	if err != nil {
		return ConversionResult{}, &ConversionError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseConversionFailure,
		}
	}
	return NewConversionResult(markdown), nil
}
