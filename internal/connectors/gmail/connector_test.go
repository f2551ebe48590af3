package gmail

import (
	"encoding/base64"
	"testing"
)

const sampleRaw = "From: Billing <billing@acme.test>\r\n" +
	"To: ap@example.test\r\n" +
	"Subject: March invoices\r\n" +
	"Message-ID: <abc@acme.test>\r\n" +
	"Date: Fri, 01 Mar 2024 10:30:00 +0100\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"see attached\r\n"

func TestFromRawReadsHeaders(t *testing.T) {
	msg := fromRaw([]byte(sampleRaw), "gm-1")

	if msg.Provider != "gmail" {
		t.Fatalf("provider=%s", msg.Provider)
	}
	if msg.MessageID != "<abc@acme.test>" {
		t.Fatalf("message id=%s", msg.MessageID)
	}
	if msg.Subject != "March invoices" {
		t.Fatalf("subject=%s", msg.Subject)
	}
	if msg.ReceivedAt != "2024-03-01T09:30:00Z" {
		t.Fatalf("received=%s", msg.ReceivedAt)
	}
}

func TestFromRawFallsBackToGmailID(t *testing.T) {
	msg := fromRaw([]byte("Subject: hi\r\n\r\nbody"), "gm-2")
	if msg.MessageID != "gm-2" {
		t.Fatalf("message id=%s", msg.MessageID)
	}
}

func TestDecodeBase64URL(t *testing.T) {
	encoded := base64.URLEncoding.EncodeToString([]byte("raw?>"))
	got, err := decodeBase64URL(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "raw?>" {
		t.Fatalf("got=%q", got)
	}
}
