package vdom

import "strings"

func attr(key string, value any) Attr { return Attr{Key: key, Value: value} }

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
// Repeated Class attributes on one element accumulate.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// StyleAttr sets the style attribute.
func StyleAttr(style string) Attr { return attr("style", style) }

// Data creates a data-* attribute: Data("id", "123") → data-id="123".
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return attr("aria-label", label) }

// Lang sets the lang attribute.
func Lang(lang string) Attr { return attr("lang", lang) }

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", url) }

// Rel sets the rel attribute.
func Rel(rel string) Attr { return attr("rel", rel) }

// Src sets the src attribute.
func Src(url string) Attr { return attr("src", url) }

// Alt sets the alt attribute.
func Alt(text string) Attr { return attr("alt", text) }

// Name sets the name attribute.
func Name(name string) Attr { return attr("name", name) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Value sets the value attribute.
func Value(value string) Attr { return attr("value", value) }

// Content sets the content attribute (meta elements).
func Content(value string) Attr { return attr("content", value) }

// Disabled sets the disabled boolean attribute.
func Disabled() Attr { return attr("disabled", true) }

// Checked sets the checked boolean attribute.
func Checked() Attr { return attr("checked", true) }

// Hidden sets the hidden boolean attribute.
func Hidden() Attr { return attr("hidden", true) }

// Key sets the sibling identity of the element. It is not rendered.
func Key(key string) Attr { return attr("key", key) }

// Attribute creates an arbitrary attribute.
func Attribute(key string, value any) Attr { return attr(key, value) }
