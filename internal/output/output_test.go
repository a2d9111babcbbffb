package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resistanceisuseless/subrecon/internal/config"
	"github.com/resistanceisuseless/subrecon/internal/dns"
	"github.com/resistanceisuseless/subrecon/internal/enumeration"
	"github.com/resistanceisuseless/subrecon/internal/takeover"
)

func sampleResponse() enumeration.Response {
	result := &enumeration.Result{
		Domain: "example.com",
		Findings: []enumeration.Finding{
			{Subdomain: "www.example.com", RecordType: dns.TypeA, Value: enumeration.Multiple([]string{"93.184.216.34"}), AdditionalInfo: "HTTP 200"},
			{Subdomain: "api.example.com", RecordType: dns.TypeCNAME, Value: enumeration.Single("api-backend.herokuapp.com"), AdditionalInfo: takeover.RiskNote},
			{Subdomain: "mail.example.com", RecordType: dns.TypeMX, Value: enumeration.Multiple([]string{"mx1.example.com", "mx2.example.com"}), AdditionalInfo: "MX priority 10"},
		},
		Page:     1,
		PageSize: 10,
	}
	return result.Response()
}

func writerFor(format string) *Writer {
	cfg := config.Default()
	cfg.Output.Format = format
	return New(cfg)
}

func TestEncodeJSONMatchesResponse(t *testing.T) {
	resp := sampleResponse()

	var buf bytes.Buffer
	require.NoError(t, writerFor("json").Encode(&buf, resp))

	want, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), buf.String())
}

func TestEncodeCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writerFor("csv").Encode(&buf, sampleResponse()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Subdomain", "Record_Type", "Value", "Additional_Info"}, rows[0])
	assert.Equal(t, []string{"api.example.com", "CNAME", "api-backend.herokuapp.com", takeover.RiskNote}, rows[2])
	assert.Equal(t, "mx1.example.com;mx2.example.com", rows[3][2])
}

func TestEncodeText(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	resp := sampleResponse()
	resp.WildcardDetected = true

	var buf bytes.Buffer
	require.NoError(t, writerFor("text").Encode(&buf, resp))

	out := buf.String()
	assert.Contains(t, out, "[A    ] www.example.com   93.184.216.34  (HTTP 200)")
	assert.Contains(t, out, "[CNAME] api.example.com   api-backend.herokuapp.com  ("+takeover.RiskNote+")")
	assert.Contains(t, out, "mx1.example.com, mx2.example.com")
	assert.Contains(t, out, "3 of 3 subdomains (page 1, page size 10), wildcard DNS detected")
}

func TestWriteTextFileHasNoColorCodes(t *testing.T) {
	// Pretend stdout is a terminal
	noColor := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = noColor })

	cfg := config.Default()
	cfg.Output.Format = "text"
	cfg.Output.File = filepath.Join(t.TempDir(), "results.txt")
	require.NoError(t, New(cfg).WriteResults(sampleResponse()))

	data, err := os.ReadFile(cfg.Output.File)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\x1b[")
	assert.Contains(t, string(data), "("+takeover.RiskNote+")")
}

func TestEncodeUnknownFormat(t *testing.T) {
	err := writerFor("xml").Encode(&bytes.Buffer{}, sampleResponse())
	assert.EqualError(t, err, "unsupported output format: xml")
}

func TestWriteResultsToFile(t *testing.T) {
	cfg := config.Default()
	cfg.Output.File = filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, New(cfg).WriteResults(sampleResponse()))

	data, err := os.ReadFile(cfg.Output.File)
	require.NoError(t, err)

	var decoded enumeration.Response
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 3, decoded.TotalSubdomains)
	assert.Equal(t, []string{"93.184.216.34"}, decoded.FoundSubdomains[0].Value.Strings())
	assert.Equal(t, "api-backend.herokuapp.com", decoded.FoundSubdomains[1].Value.Strings()[0])
}
