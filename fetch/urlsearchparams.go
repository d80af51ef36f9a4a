package fetch

// URLSearchParams is an ordered key/value list rendered as
// application/x-www-form-urlencoded, spec.md §3's "url-form" variant. It
// implements body.URLForm, which is how the body extractor (C1)
// recognizes it as variant 2.
type URLSearchParams struct {
	pairs [][2]string
}

func NewURLSearchParams() *URLSearchParams { return &URLSearchParams{} }

func (p *URLSearchParams) Append(name, value string) {
	p.pairs = append(p.pairs, [2]string{name, value})
}

func (p *URLSearchParams) Pairs() [][2]string { return p.pairs }
