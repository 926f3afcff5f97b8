package feed

import (
	"encoding/xml"

	"github.com/olimci/guffipedia/pkg/words"
)

// writer emits prefixed element names verbatim, which the struct tag
// encoder cannot do for a prefix chosen at runtime. The first error sticks.
type writer struct {
	enc    *xml.Encoder
	prefix string
	err    error
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func (x *writer) token(t xml.Token) {
	if x.err == nil {
		x.err = x.enc.EncodeToken(t)
	}
}

func (x *writer) start(name string, attrs ...xml.Attr) {
	x.token(xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs})
}

func (x *writer) end(name string) {
	x.token(xml.EndElement{Name: xml.Name{Local: name}})
}

func (x *writer) text(name, value string) {
	x.start(name)
	if value != "" {
		x.token(xml.CharData(value))
	}
	x.end(name)
}

func (x *writer) qualify(name string) string {
	return x.prefix + ":" + name
}

func (x *writer) ns(name, value string) {
	x.text(x.qualify(name), value)
}

func (x *writer) optional(name, value string) {
	if value != "" {
		x.ns(name, value)
	}
}

func (x *writer) ref(name string, ref words.Ref) {
	x.start(x.qualify(name))
	x.ns("slug", ref.Slug)
	x.ns("word", ref.Word)
	x.end(x.qualify(name))
}
