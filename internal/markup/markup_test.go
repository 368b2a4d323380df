package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docrun/docrun/internal/document"
)

func parse(t *testing.T, kind document.Markup, text string, opts Options) []document.Region {
	t.Helper()
	src := &document.Source{Path: "doc.test", Text: text, Markup: kind}
	regions, err := Parse(src, opts)
	require.NoError(t, err)
	return regions
}

func parseErr(t *testing.T, kind document.Markup, text string, opts Options) error {
	t.Helper()
	src := &document.Source{Path: "doc.test", Text: text, Markup: kind}
	_, err := Parse(src, opts)
	require.Error(t, err)
	return err
}

func pyOpts() Options {
	return Options{
		Languages:       []string{"python"},
		SkipDirectives:  SkipDirectives(nil),
		GroupDirectives: GroupDirectives(nil),
	}
}

func TestParse_MySTFence(t *testing.T) {
	text := "# Title\n" +
		"\n" +
		"```python\n" +
		"x = 1\n" +
		"y = 2\n" +
		"```\n" +
		"\n" +
		"```javascript\n" +
		"var x;\n" +
		"```\n"

	regions := parse(t, document.MyST, text, pyOpts())
	require.Len(t, regions, 1)

	r := regions[0]
	assert.Equal(t, "python", r.Language)
	assert.Equal(t, "x = 1\ny = 2\n", r.Content)
	assert.Equal(t, 4, r.StartLine)
	assert.Equal(t, 4, r.ContentStart)
	assert.Equal(t, 5, r.ContentEnd)
	assert.False(t, r.Skip)
	assert.False(t, r.Grouped())
}

func TestParse_TildeFenceAndLongerClose(t *testing.T) {
	text := "~~~~python\n" +
		"x = 1\n" +
		"~~~~~~\n"
	regions := parse(t, document.MyST, text, pyOpts())
	require.Len(t, regions, 1)
	assert.Equal(t, "x = 1\n", regions[0].Content)
}

func TestParse_IndentedFenceDedents(t *testing.T) {
	text := "- item\n" +
		"  ```python\n" +
		"  x = 1\n" +
		"  ```\n"
	regions := parse(t, document.MyST, text, pyOpts())
	require.Len(t, regions, 1)
	assert.Equal(t, "x = 1\n", regions[0].Content)
	assert.Equal(t, "  ", regions[0].Indent)
}

func TestParse_MySTCodeBlockDirectiveFence(t *testing.T) {
	text := "```{code-block} python\n" +
		"x = 1\n" +
		"```\n" +
		"```{note}\n" +
		"not code\n" +
		"```\n"
	regions := parse(t, document.MyST, text, pyOpts())
	require.Len(t, regions, 1)
	assert.Equal(t, "python", regions[0].Language)
}

func TestParse_UnterminatedFence(t *testing.T) {
	err := parseErr(t, document.MyST, "```python\nx = 1\n", pyOpts())
	pe, ok := err.(ParseError)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, 1, pe.Line)
}

func TestParse_SkipAppliesToNextBlockOnly(t *testing.T) {
	text := "<!--- skip docrun[all]: next -->\n" +
		"```python\n" +
		"skipped = True\n" +
		"```\n" +
		"```python\n" +
		"kept = True\n" +
		"```\n"
	regions := parse(t, document.MyST, text, pyOpts())
	require.Len(t, regions, 2)
	assert.True(t, regions[0].Skip)
	assert.False(t, regions[1].Skip)
}

func TestParse_SkipSurvivesOtherLanguageBlocks(t *testing.T) {
	text := "<!--- skip docrun[all]: next -->\n" +
		"```javascript\n" +
		"var x;\n" +
		"```\n" +
		"```python\n" +
		"skipped = True\n" +
		"```\n"
	regions := parse(t, document.MyST, text, pyOpts())
	require.Len(t, regions, 1)
	assert.Equal(t, "python", regions[0].Language)
	assert.True(t, regions[0].Skip)
}

func TestParse_SkipCustomMarker(t *testing.T) {
	opts := pyOpts()
	opts.SkipDirectives = SkipDirectives([]string{"type-check"})

	text := "% skip docrun[type-check]: next\n" +
		"```python\n" +
		"x = 1\n" +
		"```\n"
	regions := parse(t, document.MyST, text, opts)
	require.Len(t, regions, 1)
	assert.True(t, regions[0].Skip)

	// An unconfigured marker is an ordinary comment.
	regions = parse(t, document.MyST, text, pyOpts())
	require.Len(t, regions, 1)
	assert.False(t, regions[0].Skip)
}

func TestParse_Group(t *testing.T) {
	text := "<!--- group docrun[all]: start -->\n" +
		"```python\n" +
		"a = 1\n" +
		"```\n" +
		"```python\n" +
		"b = a\n" +
		"```\n" +
		"<!--- group docrun[all]: end -->\n" +
		"```python\n" +
		"solo = 1\n" +
		"```\n"
	regions := parse(t, document.MyST, text, pyOpts())
	require.Len(t, regions, 3)

	assert.True(t, regions[0].Grouped())
	assert.True(t, regions[1].Grouped())
	assert.Equal(t, regions[0].GroupID, regions[1].GroupID)
	assert.Equal(t, 8, regions[0].GroupEnd)
	assert.Equal(t, 8, regions[1].GroupEnd)
	assert.False(t, regions[2].Grouped())
}

func TestParse_GroupEndWithoutStart(t *testing.T) {
	err := parseErr(t, document.MyST, "<!--- group docrun[all]: end -->\n", pyOpts())
	assert.ErrorContains(t, err, "without a matching start")
}

func TestParse_NestedGroup(t *testing.T) {
	text := "<!--- group docrun[all]: start -->\n" +
		"<!--- group docrun[all]: start -->\n"
	err := parseErr(t, document.MyST, text, pyOpts())
	assert.ErrorContains(t, err, "open group")
}

func TestParse_UnterminatedGroup(t *testing.T) {
	text := "<!--- group docrun[all]: start -->\n" +
		"```python\n" +
		"x = 1\n" +
		"```\n"
	err := parseErr(t, document.MyST, text, pyOpts())
	assert.ErrorContains(t, err, "no matching end")
}

func TestParse_MismatchedGroupMarkers(t *testing.T) {
	opts := pyOpts()
	opts.GroupDirectives = GroupDirectives([]string{"lint"})

	text := "<!--- group docrun[lint]: start -->\n" +
		"<!--- group docrun[all]: end -->\n"
	err := parseErr(t, document.MyST, text, opts)
	assert.ErrorContains(t, err, "does not close")
}

func TestParse_RSTDirectives(t *testing.T) {
	text := "Title\n" +
		"=====\n" +
		"\n" +
		".. code-block:: python\n" +
		"   :caption: example\n" +
		"\n" +
		"   x = 1\n" +
		"\n" +
		"   y = 2\n" +
		"\n" +
		"Back to prose.\n"

	regions := parse(t, document.RST, text, pyOpts())
	require.Len(t, regions, 1)

	r := regions[0]
	assert.Equal(t, "python", r.Language)
	assert.Equal(t, "x = 1\n\ny = 2\n", r.Content)
	assert.Equal(t, 7, r.ContentStart)
	assert.Equal(t, 9, r.ContentEnd)
	assert.Equal(t, "   ", r.Indent)
}

func TestParse_RSTSkipComment(t *testing.T) {
	text := ".. skip docrun[all]: next\n" +
		"\n" +
		".. code-block:: python\n" +
		"\n" +
		"   x = 1\n"
	regions := parse(t, document.RST, text, pyOpts())
	require.Len(t, regions, 1)
	assert.True(t, regions[0].Skip)
}

func TestParse_RSTJinjaTemplate(t *testing.T) {
	text := ".. jinja::\n" +
		"\n" +
		"   {{ value }}\n"

	opts := pyOpts()
	regions := parse(t, document.RST, text, opts)
	assert.Empty(t, regions)

	opts.Templates = true
	regions = parse(t, document.RST, text, opts)
	require.Len(t, regions, 1)
	assert.Equal(t, "", regions[0].Language)
	assert.Equal(t, "{{ value }}\n", regions[0].Content)
}

func TestParse_MDXComment(t *testing.T) {
	text := "{/* skip docrun[all]: next */}\n" +
		"```python\n" +
		"x = 1\n" +
		"```\n"
	regions := parse(t, document.MDX, text, pyOpts())
	require.Len(t, regions, 1)
	assert.True(t, regions[0].Skip)
}

func TestParse_DjotComment(t *testing.T) {
	text := "{% skip docrun[all]: next %}\n" +
		"```python\n" +
		"x = 1\n" +
		"```\n"
	regions := parse(t, document.Djot, text, pyOpts())
	require.Len(t, regions, 1)
	assert.True(t, regions[0].Skip)
}

func TestParse_Norg(t *testing.T) {
	text := "% skip docrun[all]: next\n" +
		"@code python\n" +
		"x = 1\n" +
		"@end\n" +
		"@code python\n" +
		"y = 2\n" +
		"@end\n"
	regions := parse(t, document.Norg, text, pyOpts())
	require.Len(t, regions, 2)
	assert.True(t, regions[0].Skip)
	assert.Equal(t, "y = 2\n", regions[1].Content)
}

func TestParse_NorgMissingEnd(t *testing.T) {
	err := parseErr(t, document.Norg, "@code python\nx = 1\n", pyOpts())
	assert.ErrorContains(t, err, "@end")
}

func TestDirectives_AllMarkerImplied(t *testing.T) {
	dirs := SkipDirectives([]string{"lint", "all", "lint"})
	assert.Equal(t, []string{"skip docrun[all]", "skip docrun[lint]"}, dirs)
}
