package keys

import (
	"encoding/base64"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestSimpleKeyfile(t *testing.T) {
	dir, err := ioutil.TempDir("", "ecoblock")
	if err != nil {
		t.Fatalf("err: %v ", err)
	}
	defer os.RemoveAll(dir)

	simpleKeyfile := NewSimpleKeyfile(filepath.Join(dir, "priv_key"))

	// Try a read, should get nothing
	key, err := simpleKeyfile.ReadKey()
	if err == nil {
		t.Fatalf("ReadKey should generate an error")
	}
	if key != nil {
		t.Fatalf("key is not nil")
	}

	key, _ = GenerateKey()

	if err := simpleKeyfile.WriteKey(key); err != nil {
		t.Fatalf("err: %v", err)
	}

	nKey, err := simpleKeyfile.ReadKey()
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if PrivateKeyHex(nKey) != PrivateKeyHex(key) {
		t.Fatalf("Keys do not match")
	}

	kp, err := simpleKeyfile.ReadKeypair()
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if kp.PublicKey() != EncodePublicKey(key.PubKey()) {
		t.Fatalf("Keypair public key does not match")
	}
}

func TestFilePermissions(t *testing.T) {
	dir, err := ioutil.TempDir("", "ecoblock")
	if err != nil {
		t.Fatalf("err: %v ", err)
	}
	defer os.RemoveAll(dir)

	key, _ := GenerateKey()
	rawKey := PrivateKeyHex(key)

	badKeyPath := filepath.Join(dir, "priv_key_bad")

	shouldErr := []os.FileMode{
		0777, 0766, 0744,
		0677, 0666, 0644,
	}

	for _, fm := range shouldErr {
		os.Remove(badKeyPath)
		if err := ioutil.WriteFile(badKeyPath, []byte(rawKey), fm); err != nil {
			t.Fatal(err)
		}
		// WriteFile is subject to umask
		if err := os.Chmod(badKeyPath, fm); err != nil {
			t.Fatal(err)
		}

		if _, err := NewSimpleKeyfile(badKeyPath).ReadKey(); err == nil {
			t.Fatalf("%o || badKeyFile should return permissions error", fm)
		}
	}

	goodKeyPath := filepath.Join(dir, "priv_key_good")

	for _, fm := range []os.FileMode{0700, 0600} {
		os.Remove(goodKeyPath)
		if err := ioutil.WriteFile(goodKeyPath, []byte(rawKey), fm); err != nil {
			t.Fatal(err)
		}

		if _, err := NewSimpleKeyfile(goodKeyPath).ReadKey(); err != nil {
			t.Fatalf("%o || goodKeyFile should not return error. Got %v", fm, err)
		}
	}
}

func TestParsePrivateKey(t *testing.T) {
	if _, err := ParsePrivateKey([]byte{1, 2, 3}); err == nil {
		t.Fatalf("short key should be rejected")
	}

	if _, err := ParsePrivateKey(make([]byte, 32)); err == nil {
		t.Fatalf("zero key should be rejected")
	}

	tooBig := Curve().N.Bytes()
	if _, err := ParsePrivateKey(tooBig); err == nil {
		t.Fatalf("key equal to N should be rejected")
	}

	key, _ := GenerateKey()
	parsed, err := ParsePrivateKey(DumpPrivateKey(key))
	if err != nil {
		t.Fatal(err)
	}
	if !parsed.PubKey().IsEqual(key.PubKey()) {
		t.Fatalf("parsed key should have the same public key")
	}
}

func TestSignVerify(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}

	msg := []byte("J'aime mieux forger mon ame que la meubler")

	sig, err := kp.Sign(msg)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := VerifyEncoded(kp.PublicKey(), msg, sig)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatalf("signature should verify")
	}

	ok, err = VerifyEncoded(kp.PublicKey(), []byte("something else"), sig)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatalf("signature should not verify over different data")
	}

	other, _ := GenerateKeypair()
	ok, err = VerifyEncoded(other.PublicKey(), msg, sig)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatalf("signature should not verify with another public key")
	}
}

func TestVerifyEncodedMalformed(t *testing.T) {
	kp, _ := GenerateKeypair()
	msg := []byte("data")
	sig, _ := kp.Sign(msg)

	if _, err := VerifyEncoded("not base64!", msg, sig); err == nil {
		t.Fatalf("malformed public key should return an error")
	}

	if _, err := VerifyEncoded(base64.StdEncoding.EncodeToString([]byte{2, 1}), msg, sig); err == nil {
		t.Fatalf("invalid point should return an error")
	}

	if _, err := VerifyEncoded(kp.PublicKey(), msg, base64.StdEncoding.EncodeToString([]byte("junk"))); err == nil {
		t.Fatalf("malformed signature should return an error")
	}
}

func TestPublicKeyEncoding(t *testing.T) {
	key, _ := GenerateKey()

	enc := EncodePublicKey(key.PubKey())

	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 33 {
		t.Fatalf("compressed public key should be 33 bytes, not %d", len(raw))
	}

	pub, err := DecodePublicKey(enc)
	if err != nil {
		t.Fatal(err)
	}
	if !pub.IsEqual(key.PubKey()) {
		t.Fatalf("decoded public key does not match")
	}
}
