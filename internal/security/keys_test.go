package security

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPEM_Inline(t *testing.T) {
	pemBytes, err := LoadPEM(testPrivateKeyPEM)
	if err != nil {
		t.Fatalf("LoadPEM: %v", err)
	}
	if !strings.Contains(string(pemBytes), "-----BEGIN") {
		t.Error("LoadPEM did not return PEM content")
	}
}

func TestLoadPEM_FilePath(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "test.pem")
	if err := os.WriteFile(tmpFile, []byte(testPublicKeyPEM), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	pemBytes, err := LoadPEM(tmpFile)
	if err != nil {
		t.Fatalf("LoadPEM: %v", err)
	}
	if !strings.Contains(string(pemBytes), "-----BEGIN") {
		t.Error("LoadPEM did not read file content")
	}
}

func TestLoadPEM_Empty(t *testing.T) {
	if _, err := LoadPEM(""); err != ErrInvalidKey {
		t.Errorf("LoadPEM(\"\") = %v, want ErrInvalidKey", err)
	}
}

func TestParseKeys(t *testing.T) {
	priv, err := ParsePrivateKey(testPrivateKeyPEM)
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	if priv == nil {
		t.Fatal("ParsePrivateKey returned nil")
	}
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	if pub == nil {
		t.Fatal("ParsePublicKey returned nil")
	}
}

func TestParsePrivateKey_Garbage(t *testing.T) {
	if _, err := ParsePrivateKey("-----BEGIN JUNK-----\nabc\n-----END JUNK-----"); err == nil {
		t.Fatal("ParsePrivateKey should reject unknown PEM type")
	}
}
