package ingest

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/jhillyerd/enmime"
)

// Mail is the parsed envelope of a raw message with the tables found in it.
type Mail struct {
	Subject     string
	From        string
	Attachments []string
	Tables      []RawTable
}

// ReadMail parses a raw RFC 5322 message. Every attachment in a supported
// format is parsed; an HTML body table is read as well. Attachments that
// fail to parse are listed but yield no table.
func ReadMail(raw []byte) (Mail, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return Mail{}, err
	}

	mail := Mail{Subject: env.GetHeader("Subject"), From: env.GetHeader("From")}
	parts := append(append([]*enmime.Part{}, env.Attachments...), env.Inlines...)
	for _, att := range parts {
		filename := strings.TrimSpace(att.FileName)
		if filename == "" {
			continue
		}
		mail.Attachments = append(mail.Attachments, filename)

		format, err := DetectFormat(filename, att.Content)
		if err != nil || format == FormatEML {
			continue
		}
		tables, err := Parse(filename, att.Content)
		if err != nil {
			continue
		}
		mail.Tables = append(mail.Tables, tables...)
	}

	if strings.Contains(strings.ToLower(env.HTML), "<table") {
		if t, err := parseHTML(env.HTML); err == nil {
			t.Source = "body.html"
			t.Format = FormatHTML
			mail.Tables = append(mail.Tables, t)
		}
	}
	return mail, nil
}

func parseEML(filename string, content []byte) ([]RawTable, error) {
	mail, err := ReadMail(content)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(filename)
	for i := range mail.Tables {
		mail.Tables[i].Source = base + "/" + mail.Tables[i].Source
	}
	if len(mail.Tables) == 0 {
		return nil, ErrNoHeader
	}
	return mail.Tables, nil
}
