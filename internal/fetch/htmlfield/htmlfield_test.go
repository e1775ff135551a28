package htmlfield

import (
	"testing"
)

const tablePage = `<html><body>
<table>
<tr><th>Make</th><td>VOLKSWAGEN</td></tr>
<tr><td>Colour:</td><td>Silver</td></tr>
<tr><td>Engine Size (cc)</td><td>1998cc</td></tr>
<tr><td>Empty</td><td></td></tr>
</table>
</body></html>`

const definitionListPage = `<html><body>
<dl>
<dt>Fuel Type</dt><dd>Petrol</dd>
<dt>Insurance Group:</dt><dd>32E</dd>
</dl>
</body></html>`

const plainTextPage = `<html><body>
<div>Top Speed: 146 mph</div>
<div><span>Body Style</span><span>Hatchback</span></div>
<script>var makeBelieve = "Make: WRONG";</script>
</body></html>`

func TestFieldFromTable(t *testing.T) {
	doc, err := Parse([]byte(tablePage))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tests := []struct {
		labels   []string
		expected string
	}{
		{[]string{"Make"}, "VOLKSWAGEN"},
		{[]string{"Colour"}, "Silver"},
		{[]string{"Engine Size"}, "1998cc"},
		{[]string{"Manufacturer", "Make"}, "VOLKSWAGEN"},
		{[]string{"Missing"}, ""},
		{[]string{"Empty"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.labels[0], func(t *testing.T) {
			if got := doc.Field(tt.labels...); got != tt.expected {
				t.Errorf("Field(%v) = %q, want %q", tt.labels, got, tt.expected)
			}
		})
	}
}

func TestFieldFromDefinitionList(t *testing.T) {
	doc, err := Parse([]byte(definitionListPage))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := doc.Field("Fuel Type"); got != "Petrol" {
		t.Errorf("Field(Fuel Type) = %q, want %q", got, "Petrol")
	}
	if got := doc.Field("Insurance Group"); got != "32E" {
		t.Errorf("Field(Insurance Group) = %q, want %q", got, "32E")
	}
}

func TestFieldFromText(t *testing.T) {
	doc, err := Parse([]byte(plainTextPage))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := doc.Field("Top Speed"); got != "146 mph" {
		t.Errorf("Field(Top Speed) = %q, want %q", got, "146 mph")
	}
	if got := doc.Field("Body Style"); got != "Hatchback" {
		t.Errorf("Field(Body Style) = %q, want %q", got, "Hatchback")
	}
	// Script content must not leak into extraction.
	if got := doc.Field("Make"); got != "" {
		t.Errorf("Field(Make) = %q, want empty", got)
	}
}

func TestFormValue(t *testing.T) {
	page := `<html><body><form action="/search">
<input name="__RequestVerificationToken" type="hidden" value="tok-123"/>
<input name="registrationMark" type="text"/>
</form></body></html>`

	doc, err := Parse([]byte(page))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := doc.FormValue("__RequestVerificationToken"); got != "tok-123" {
		t.Errorf("FormValue = %q, want %q", got, "tok-123")
	}
	if got := doc.FormValue("registrationMark"); got != "" {
		t.Errorf("FormValue on input without a value attribute = %q, want empty", got)
	}
	if got := doc.FormValue("missing"); got != "" {
		t.Errorf("FormValue(missing) = %q, want empty", got)
	}
}
