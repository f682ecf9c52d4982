// Package permit holds the token the weaving engine uses to let an
// interceptor replace the arguments of a call. Code outside this module
// can't import it, and the zero Token grants nothing, so an interceptor
// can't raise the permission of the view it was given.
package permit

// Token grants permission to replace call arguments.
type Token struct{ granted bool }

// Grant returns a Token that grants the permission.
func Grant() Token { return Token{granted: true} }

// Granted tells whether t grants the permission.
func (t Token) Granted() bool { return t.granted }
