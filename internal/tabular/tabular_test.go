package tabular

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestReconcile_AcceptsAndNormalizes(t *testing.T) {
	chars, rep := Reconcile([]RawRow{
		{Name: "Holo", Birthday: "5-5", Source: " Spice and Wolf ", UserBirthdayMessage: "Cheers"},
	})
	if rep.Accepted != 1 || rep.Rejected != 0 {
		t.Fatalf("report = %+v", rep)
	}
	c := chars[0]
	if c.Birthday != "05-05" {
		t.Errorf("birthday = %q, want 05-05 (zero-padded on import)", c.Birthday)
	}
	if c.Source != "Spice and Wolf" {
		t.Errorf("source = %q", c.Source)
	}
	if c.Image != "" {
		t.Errorf("image must always be empty on import, got %q", c.Image)
	}
}

func TestReconcile_RejectsRowsIndependently(t *testing.T) {
	chars, rep := Reconcile([]RawRow{
		{Name: "", Birthday: "01-01", UserBirthdayMessage: "x"},       // missing name
		{Name: "A", Birthday: "", UserBirthdayMessage: "x"},           // missing birthday
		{Name: "B", Birthday: "02-02", UserBirthdayMessage: ""},       // missing message
		{Name: "C", Birthday: "May 5", UserBirthdayMessage: "x"},      // not digit-hyphen-digit
		{Name: "D", Birthday: "5-5", UserBirthdayMessage: "x"},        // single digits accepted
		{Name: "E", Birthday: " 12-31 ", UserBirthdayMessage: "x"},    // trimmed
		{Name: "F", Birthday: "2000-05-05", UserBirthdayMessage: "x"}, // year not allowed
	})
	if rep.Total != 7 || rep.Accepted != 2 || rep.Rejected != 5 {
		t.Fatalf("report = %+v", rep)
	}
	if chars[0].Name != "D" || chars[1].Name != "E" {
		t.Errorf("accepted = %v", chars)
	}
}

func TestReport_EmptyVsAllRejected(t *testing.T) {
	_, empty := Reconcile(nil)
	if !empty.Empty() {
		t.Error("empty source should report Empty")
	}
	_, rejected := Reconcile([]RawRow{{Name: "X"}})
	if rejected.Empty() || rejected.Accepted != 0 {
		t.Errorf("all-rejected source must be distinct from empty: %+v", rejected)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	rows := []RawRow{
		{Name: "Holo", Birthday: "07-07", Source: "Spice and Wolf", UserBirthdayMessage: "Cheers, little one"},
		{Name: "Kyon", Birthday: "12-31", Source: "", UserBirthdayMessage: "Yare yare"},
		{Name: "Comma, Inc", Birthday: "01-05", Source: "a \"quoted\" show", UserBirthdayMessage: "line\nbreak"},
	}

	var buf bytes.Buffer
	if err := EncodeCSV(&buf, rows); err != nil {
		t.Fatalf("EncodeCSV: %v", err)
	}
	got, err := DecodeCSV(&buf)
	if err != nil {
		t.Fatalf("DecodeCSV: %v", err)
	}
	if !reflect.DeepEqual(got, rows) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, rows)
	}
}

func TestDecodeCSV_HeaderVariants(t *testing.T) {
	in := "Name,BIRTHDAY,source,userbirthdaymessage,extra\nHolo,07-07,Wolf,hi,ignored\n"
	got, err := DecodeCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("DecodeCSV: %v", err)
	}
	want := []RawRow{{Name: "Holo", Birthday: "07-07", Source: "Wolf", UserBirthdayMessage: "hi"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestDecodeCSV_EmptyFile(t *testing.T) {
	got, err := DecodeCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("DecodeCSV: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no rows, got %v", got)
	}
}

func TestExportRows_StripsIDAndImage(t *testing.T) {
	chars, _ := Reconcile([]RawRow{{Name: "Holo", Birthday: "7-7", UserBirthdayMessage: "hi"}})
	chars[0].ID = "some-uuid"
	chars[0].Image = "data:image/png;base64,XX"

	rows := ExportRows(chars)
	if len(rows) != 1 {
		t.Fatal("expected one row")
	}
	if rows[0] != (RawRow{Name: "Holo", Birthday: "07-07", Source: "", UserBirthdayMessage: "hi"}) {
		t.Errorf("row = %+v", rows[0])
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	// Exporting then importing reproduces the same 4-tuples.
	original := []RawRow{
		{Name: "A", Birthday: "01-05", Source: "S1", UserBirthdayMessage: "m1"},
		{Name: "B", Birthday: "03-10", Source: "", UserBirthdayMessage: "m2"},
	}
	first, rep := Reconcile(original)
	if rep.Accepted != 2 {
		t.Fatalf("seed reconcile: %+v", rep)
	}

	var buf bytes.Buffer
	if err := EncodeCSV(&buf, ExportRows(first)); err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeCSV(&buf)
	if err != nil {
		t.Fatal(err)
	}
	second, rep := Reconcile(decoded)
	if rep.Accepted != 2 {
		t.Fatalf("second reconcile: %+v", rep)
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.Name != b.Name || a.Birthday != b.Birthday || a.Source != b.Source || a.UserBirthdayMessage != b.UserBirthdayMessage {
			t.Errorf("tuple %d mismatch: %+v vs %+v", i, a, b)
		}
	}
}

func TestDecodeVCard(t *testing.T) {
	in := strings.Join([]string{
		"BEGIN:VCARD",
		"VERSION:4.0",
		"FN:Holo",
		"ORG:Spice and Wolf",
		"BDAY:2000-07-07",
		"X-KOYOMI-MESSAGE:Cheers",
		"END:VCARD",
		"BEGIN:VCARD",
		"VERSION:4.0",
		"FN:Nagato",
		"BDAY:--01-05",
		"NOTE:From the note field",
		"END:VCARD",
		"",
	}, "\r\n")

	rows, err := DecodeVCard(strings.NewReader(in))
	if err != nil {
		t.Fatalf("DecodeVCard: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0] != (RawRow{Name: "Holo", Birthday: "07-07", Source: "Spice and Wolf", UserBirthdayMessage: "Cheers"}) {
		t.Errorf("row 0 = %+v", rows[0])
	}
	// Year is discarded, NOTE backs an absent X-KOYOMI-MESSAGE.
	if rows[1] != (RawRow{Name: "Nagato", Birthday: "01-05", Source: "", UserBirthdayMessage: "From the note field"}) {
		t.Errorf("row 1 = %+v", rows[1])
	}
}
