package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderEmpty(t *testing.T) {
	assert.Equal(t, "", Render(""))
	assert.Equal(t, "", Render("   \n\t\n"))
}

func TestRenderPlainText(t *testing.T) {
	assert.Equal(t, "<p>hola, ¿cómo andás?</p>", Render("hola, ¿cómo andás?"))
}

func TestRenderEscapesHTML(t *testing.T) {
	out := Render("<script>alert(1)</script> & friends")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "&amp; friends")
}

func TestCitationArtifactsStripped(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"full-width brackets", "El horario es de 8 a 16【4:0†horarios.pdf】 todos los días"},
		{"ascii bracket form", "El horario es de 8 a 16[4:0†horarios.pdf] todos los días"},
		{"multiple artifacts", "a【1:2†x】b[3:4†y]c"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Render(tc.input)
			assert.NotContains(t, out, "【")
			assert.NotContains(t, out, "】")
			assert.NotContains(t, out, "†")
			assert.NotContains(t, out, "horarios.pdf")
		})
	}
}

func TestBold(t *testing.T) {
	assert.Equal(t, "<p><strong>bold</strong></p>", Render("**bold**"))
	assert.Equal(t, "<p><strong>bold</strong></p>", Render("__bold__"))
	out := Render("**bold**")
	assert.NotContains(t, out, "*")
}

func TestItalic(t *testing.T) {
	assert.Equal(t, "<p><em>it</em></p>", Render("*it*"))
	assert.Equal(t, "<p>a <em>b</em> c</p>", Render("a _b_ c"))
}

func TestBoldNotConsumedByItalic(t *testing.T) {
	out := Render("**negrita** y *cursiva*")
	assert.Contains(t, out, "<strong>negrita</strong>")
	assert.Contains(t, out, "<em>cursiva</em>")
}

func TestItalicInsideBold(t *testing.T) {
	assert.Equal(t, "<p><strong>a <em>b</em> c</strong></p>", Render("**a *b* c**"))
}

func TestUnterminatedMarkersStayLiteral(t *testing.T) {
	assert.Equal(t, "<p>3 * 4 = 12</p>", Render("3 * 4 = 12"))
	assert.Equal(t, "<p>**sin cierre</p>", Render("**sin cierre"))
	assert.Equal(t, "<p>un<em>der</em>score</p>", Render("un_der_score"))
}

func TestInlineCode(t *testing.T) {
	assert.Equal(t, "<p><code>x&lt;y</code></p>", Render("`x<y`"))
}

func TestCodeSpanIsAtomic(t *testing.T) {
	out := Render("`**no bold** [no](link)`")
	assert.NotContains(t, out, "<strong>")
	assert.NotContains(t, out, "<a ")
	assert.Contains(t, out, "**no bold**")
}

func TestFencedCodeBlock(t *testing.T) {
	out := Render("```go\nfmt.Println(\"hola\")\n```")
	assert.Equal(t, `<pre><code class="language-go">fmt.Println(&#34;hola&#34;)</code></pre>`, out)
}

func TestFencedCodeBlockNoInlineTransforms(t *testing.T) {
	out := Render("```\n**raw** y <b>\n```")
	assert.NotContains(t, out, "<strong>")
	assert.NotContains(t, out, "<b>")
	assert.Contains(t, out, "**raw**")
}

func TestHeadings(t *testing.T) {
	assert.Equal(t, "<h1>Title</h1>", Render("# Title"))
	assert.Equal(t, "<h2>Inscripciones</h2>", Render("## Inscripciones"))
	assert.Equal(t, "<h3>Sub</h3>", Render("### Sub"))
	// levels 1-3 only
	assert.Equal(t, "<p>#### no es título</p>", Render("#### no es título"))
	// no space after the hashes
	assert.Equal(t, "<p>#tag</p>", Render("#tag"))
}

func TestHeadingWithInlineFormatting(t *testing.T) {
	assert.Equal(t, "<h2>Horarios <strong>2026</strong></h2>", Render("## Horarios **2026**"))
}

func TestLinks(t *testing.T) {
	out := Render("[el colegio](https://example.com/colegio)")
	assert.Contains(t, out, `href="https://example.com/colegio"`)
	assert.Contains(t, out, `target="_blank"`)
	assert.Contains(t, out, `rel="noopener noreferrer"`)
	assert.Contains(t, out, ">el colegio</a>")
}

func TestScriptSchemeLinkDropsAnchor(t *testing.T) {
	out := Render("[clic](javascript:alert(1))")
	assert.NotContains(t, out, "<a ")
	assert.Contains(t, out, "clic")
}

func TestUnorderedList(t *testing.T) {
	assert.Equal(t, "<ul><li>uno</li><li>dos</li></ul>", Render("- uno\n- dos"))
	assert.Equal(t, "<ul><li>uno</li><li>dos</li></ul>", Render("* uno\n* dos"))
}

func TestOrderedList(t *testing.T) {
	assert.Equal(t, "<ol><li>primero</li><li>segundo</li></ol>", Render("1. primero\n2. segundo"))
}

func TestListTypeFollowsFirstMarker(t *testing.T) {
	assert.Equal(t, "<ul><li>a</li><li>b</li></ul>", Render("- a\n2. b"))
	assert.Equal(t, "<ol><li>a</li><li>b</li></ol>", Render("1. a\n- b"))
}

func TestListItemsGetInlineFormatting(t *testing.T) {
	assert.Equal(t, "<ul><li><strong>a</strong></li></ul>", Render("- **a**"))
}

func TestParagraphAndLineBreaks(t *testing.T) {
	assert.Equal(t, "<p>a<br>b</p>", Render("a\nb"))
	assert.Equal(t, "<p>a</p><p>b</p>", Render("a\n\nb"))
	assert.Equal(t, "<p>a</p><p>b</p>", Render("a\n\n\n\nb"))
}

func TestMixedDocument(t *testing.T) {
	input := "# Inscripciones\n\nTraé **DNI** y `formulario`.\n\n- Primaria\n- Secundaria\n\nMás info en [la web](https://example.com)."
	out := Render(input)
	assert.Contains(t, out, "<h1>Inscripciones</h1>")
	assert.Contains(t, out, "<strong>DNI</strong>")
	assert.Contains(t, out, "<code>formulario</code>")
	assert.Contains(t, out, "<ul><li>Primaria</li><li>Secundaria</li></ul>")
	assert.Contains(t, out, `<a href="https://example.com"`)
}

func TestRenderIsDeterministic(t *testing.T) {
	input := "## Hola\n**x** *y* `z`\n- a\n- b"
	assert.Equal(t, Render(input), Render(input))
}
