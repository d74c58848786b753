// Debug dictionary: a human-readable description of the object
// dictionary's (index, subindex) address space, for a bench tool
// talking over the USB debug link (sm4/usbdebug) to print field names
// instead of raw numbers. Adapted from the donor's dictionary.go +
// command.go, which hand-built a JSON description of the registered
// Klipper command set; here the same hand-rolled-string-builder
// approach describes object dictionary fields instead of commands,
// since this firmware has no Klipper command dictionary to describe.
package core

import "strings"

// DictField describes one (index, subindex) address the object
// dictionary answers SDO requests for.
type DictField struct {
	Index    uint16
	Subindex uint8
	Name     string
	Type     string // "f32", "u8", "i32", "u32", "bool"
	ReadOnly bool
}

// Dictionary accumulates DictFields and renders them as a compact
// text schema a bench tool can print or parse, without pulling in a
// JSON encoder for a handful of fixed rows.
type Dictionary struct {
	fields []DictField
}

// NewDictionary returns an empty Dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{}
}

// AddField registers one addressable field.
func (d *Dictionary) AddField(f DictField) {
	d.fields = append(d.fields, f)
}

// Fields returns every registered field, in registration order.
func (d *Dictionary) Fields() []DictField {
	return d.fields
}

// Generate renders the dictionary as one line per field:
// "index=0x2100 sub=0x03 name=target_velocity type=f32 rw".
func (d *Dictionary) Generate() string {
	var b strings.Builder
	for _, f := range d.fields {
		b.WriteString(renderField(f))
		b.WriteByte('\n')
	}
	return b.String()
}

func renderField(f DictField) string {
	access := "rw"
	if f.ReadOnly {
		access = "ro"
	}
	var b strings.Builder
	b.WriteString("index=0x")
	writeHex16(&b, f.Index)
	b.WriteString(" sub=0x")
	writeHex8(&b, f.Subindex)
	b.WriteString(" name=")
	b.WriteString(f.Name)
	b.WriteString(" type=")
	b.WriteString(f.Type)
	b.WriteByte(' ')
	b.WriteString(access)
	return b.String()
}

const hexDigits = "0123456789abcdef"

func writeHex16(b *strings.Builder, v uint16) {
	for shift := 12; shift >= 0; shift -= 4 {
		b.WriteByte(hexDigits[(v>>uint(shift))&0xF])
	}
}

func writeHex8(b *strings.Builder, v uint8) {
	b.WriteByte(hexDigits[(v>>4)&0xF])
	b.WriteByte(hexDigits[v&0xF])
}
