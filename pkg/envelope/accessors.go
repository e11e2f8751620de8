package envelope

import "github.com/luxfi/dvpguard/pkg/keywrap"

// WrappedKeyFor returns the wrapped symmetric key pt's ek_map holds for
// companyName, if any. Package share uses this to re-wrap a transaction's
// key for a third party without duplicating the ek_map decode logic.
func (pt *ProtectedTransaction) WrappedKeyFor(companyName string) (*keywrap.WrappedKey, bool, error) {
	return wrappedKeyEntry(pt.EKMap, companyName)
}

// WrappedKeyFor returns the wrapped symmetric key this layer's ek_map holds
// for companyName, if any.
func (le *LayeredEnvelope) WrappedKeyFor(companyName string) (*keywrap.WrappedKey, bool, error) {
	return wrappedKeyEntry(le.EKMap, companyName)
}

// Layer returns the named layer and whether it exists.
func (pt *ProtectedTransaction) Layer(section string) (*LayeredEnvelope, bool) {
	le, ok := pt.Layers[section]
	return le, ok
}
