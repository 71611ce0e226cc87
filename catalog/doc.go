// Package catalog loads the asset list for the signed-in role and models the
// dashboard around it: name search, fixed-size pages and per-asset borrow
// quantities.
//
// The package reads the session through the [Session] interface, which
// *goAset.Manager satisfies. A 401 from the product endpoint ends the session
// through Session.Invalidate.
package catalog
