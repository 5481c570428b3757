package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"invoicely/internal/core/apperror"
)

func decodeRows(t *testing.T, raw string) []Row {
	t.Helper()
	var rows []Row
	require.NoError(t, json.Unmarshal([]byte(raw), &rows))
	return rows
}

func TestRow_KeepsKeyOrder(t *testing.T) {
	rows := decodeRows(t, `[{"zeta": 1, "alpha": "a", "mid": null}]`)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, rows[0].Keys())

	out, err := json.Marshal(rows[0])
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":"a","mid":null}`, string(out))
}

func TestRow_RejectsNonObject(t *testing.T) {
	var r Row
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &r))
}

func TestExportCSV(t *testing.T) {
	rows := decodeRows(t, `[
		{"product": "Bolts", "qty": 2, "amount": 236, "note": "ok, fine"},
		{"product": "Nuts", "qty": 1.005, "amount": "12.5", "extra": true},
		{"amount": 0.1, "product": "Washers", "qty": -3}
	]`)

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, rows))

	want := "product,qty,amount,note\n" +
		"Bolts,2.00,236.00,\"ok, fine\"\n" +
		"Nuts,1.01,12.5,\n" +
		"Washers,-3.00,0.10,\n"
	assert.Equal(t, want, buf.String())
}

func TestExportCSV_NoRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "3.00", FormatCell(3))
	assert.Equal(t, "2.50", FormatCell(2.5))
	assert.Equal(t, "7", FormatCell("7"))
	assert.Equal(t, "", FormatCell(nil))
	assert.Equal(t, "true", FormatCell(true))
	assert.Equal(t, `{"a":1}`, FormatCell(map[string]any{"a": 1}))
}

func TestExportXLSX(t *testing.T) {
	rows := decodeRows(t, `[
		{"product": "Bolts", "amount": 236.456},
		{"product": "Nuts", "amount": "n/a"}
	]`)

	var buf bytes.Buffer
	require.NoError(t, ExportXLSX(&buf, rows, "Purchases"))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Purchases", "A1")
	require.NoError(t, err)
	assert.Equal(t, "product", header)

	amount, err := f.GetCellValue("Purchases", "B2")
	require.NoError(t, err)
	assert.Equal(t, "236.46", amount)

	text, err := f.GetCellValue("Purchases", "B3")
	require.NoError(t, err)
	assert.Equal(t, "n/a", text)
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Purchases", "Purchases"},
		{"  ", DefaultSheet},
		{"GST Report 01/04/2026 - 30/04/2026", "GST Report 01-04-2026 - 30-04-2"},
		{"Stock: [all] *?", "Stock- (all) --"},
		{"'quoted'", "quoted"},
		{"''", DefaultSheet},
		{"बिक्री रिपोर्ट अप्रैल से जून तक सभी शाखाएँ", "बिक्री रिपोर्ट अप्रैल से जून तक"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := SheetName(tt.title)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, utf8.RuneCountInString(got), 31)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestExportXLSX_TitleAsSheetName(t *testing.T) {
	rows := decodeRows(t, `[{"product": "Bolts", "amount": 10}]`)

	for _, title := range []string{
		"GST Report 01/04/2026 - 30/04/2026",
		"बिक्री रिपोर्ट अप्रैल से जून तक सभी शाखाएँ",
	} {
		t.Run(title, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, ExportXLSX(&buf, rows, title))

			f, err := excelize.OpenReader(&buf)
			require.NoError(t, err)
			defer f.Close()

			sheet := f.GetSheetName(0)
			assert.Equal(t, SheetName(title), sheet)
			header, err := f.GetCellValue(sheet, "A1")
			require.NoError(t, err)
			assert.Equal(t, "product", header)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	assert.Equal(t, "gst_summary.xlsx", f.Filename("GST Summary!"))

	_, err = ParseFormat("pdf")
	assert.True(t, apperror.IsValidation(err))
}

func TestFilter(t *testing.T) {
	rows := decodeRows(t, `[
		{"supplier": "Acme", "total": 1200, "status": "paid"},
		{"supplier": "Bolt Co", "total": 300.5, "status": "paid"},
		{"supplier": "Acme", "total": 5000, "status": "draft"}
	]`)

	f, err := CompileFilter(`row.status == "paid" && row.total > 1000.0`)
	require.NoError(t, err)

	got, err := f.Apply(rows)
	require.NoError(t, err)
	require.Len(t, got, 1)
	v, _ := got[0].Get("supplier")
	assert.Equal(t, "Acme", v)
}

func TestFilter_MissingKeyDoesNotMatch(t *testing.T) {
	rows := decodeRows(t, `[{"a": 1}, {"b": 2}]`)

	f, err := CompileFilter(`row.b == 2.0`)
	require.NoError(t, err)

	got, err := f.Apply(rows)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFilter_EmptyKeepsAll(t *testing.T) {
	f, err := CompileFilter("  ")
	require.NoError(t, err)
	assert.Nil(t, f)

	rows := decodeRows(t, `[{"a": 1}]`)
	got, err := f.Apply(rows)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFilter_InvalidExpression(t *testing.T) {
	_, err := CompileFilter(`row.total >`)
	assert.True(t, apperror.IsValidation(err))
}

func TestFilter_NonBoolResult(t *testing.T) {
	f, err := CompileFilter(`row.total`)
	require.NoError(t, err)

	_, err = f.Apply(decodeRows(t, `[{"total": 1}]`))
	assert.True(t, apperror.IsValidation(err))
}

type fakeMailer struct {
	sent []EmailRequest
	err  error
}

func (m *fakeMailer) EmailReport(_ context.Context, req EmailRequest) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, req)
	return nil
}

func TestService_Email(t *testing.T) {
	m := &fakeMailer{}
	s := NewService(m)
	rows := decodeRows(t, `[{"a": 1}]`)

	err := s.Email(context.Background(), EmailRequest{
		ReportName:     " Stock summary ",
		ReportData:     rows,
		RecipientEmail: "owner@example.com",
		DateFilter:     json.RawMessage(`{"from":"2026-01-01","to":"2026-01-31"}`),
	})
	require.NoError(t, err)
	require.Len(t, m.sent, 1)
	assert.Equal(t, "Stock summary", m.sent[0].ReportName)

	body, err := json.Marshal(m.sent[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"report_name": "Stock summary",
		"report_data": [{"a": 1}],
		"recipient_email": "owner@example.com",
		"date_filter": {"from": "2026-01-01", "to": "2026-01-31"}
	}`, string(body))
}

func TestService_Email_Validation(t *testing.T) {
	rows := decodeRows(t, `[{"a": 1}]`)
	tests := []struct {
		name  string
		req   EmailRequest
		field string
	}{
		{"no name", EmailRequest{ReportData: rows, RecipientEmail: "a@b.co"}, "report_name"},
		{"no recipient", EmailRequest{ReportName: "x", ReportData: rows}, "recipient_email"},
		{"bad recipient", EmailRequest{ReportName: "x", ReportData: rows, RecipientEmail: "Bob <a@b.co>"}, "recipient_email"},
		{"no rows", EmailRequest{ReportName: "x", RecipientEmail: "a@b.co"}, "report_data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeMailer{}
			err := NewService(m).Email(context.Background(), tt.req)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, appErr.Details["field"])
			assert.Empty(t, m.sent)
		})
	}
}

func TestService_Email_BackendError(t *testing.T) {
	s := NewService(&fakeMailer{err: errors.New("smtp down")})
	err := s.Email(context.Background(), EmailRequest{
		ReportName: "x", ReportData: decodeRows(t, `[{"a":1}]`), RecipientEmail: "a@b.co",
	})
	assert.ErrorContains(t, err, "smtp down")
}
