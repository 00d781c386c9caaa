package convert

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/jmylchreest/htmd/pkg/dom"
	"github.com/jmylchreest/htmd/pkg/style"
)

// libraryMarkdown renders the (already sanitized) tree back to HTML and
// hands it to html-to-markdown, configured from st. The output is
// normalized by the caller like native output.
func libraryMarkdown(doc *dom.Document, st style.Style) (string, error) {
	src, err := dom.RenderString(doc)
	if err != nil {
		return "", err
	}
	return newLibraryConverter(st).ConvertString(src)
}

func newLibraryConverter(st style.Style) *converter.Converter {
	heading := commonmark.HeadingStyleATX
	if st.Heading == style.HeadingSetext {
		heading = commonmark.HeadingStyleSetext
	}

	plugins := []converter.Plugin{
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(
			commonmark.WithHeadingStyle(heading),
			commonmark.WithEmDelimiter(st.EmphasisMarker()),
			commonmark.WithStrongDelimiter(st.StrongMarker()),
			commonmark.WithBulletListMarker(st.BulletMarker()),
		),
	}
	if st.Flavor.Tables() {
		plugins = append(plugins, table.NewTablePlugin())
	}
	if st.Flavor.Strikethrough() {
		plugins = append(plugins, strikethrough.NewStrikethroughPlugin())
	}
	return converter.NewConverter(converter.WithPlugins(plugins...))
}
