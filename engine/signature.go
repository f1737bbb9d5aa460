package engine

// signaturePrefix is how many leading characters of each text feed the
// signature.
const signaturePrefix = 120

// Signature fingerprints the current question and answer.
type Signature string

// NewSignature builds the signature from the normalised texts.
func NewSignature(question, answer string) Signature {
	return Signature(prefix(question, signaturePrefix) + "::" + prefix(answer, signaturePrefix))
}

func prefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// SignatureTracker remembers the signature of the previous pass.
type SignatureTracker struct {
	last Signature
}

// Observe stores sig and reports whether it differs from the previous one.
func (t *SignatureTracker) Observe(sig Signature) bool {
	if sig == t.last {
		return false
	}
	t.last = sig
	return true
}

// Last returns the stored signature.
func (t *SignatureTracker) Last() Signature { return t.last }
