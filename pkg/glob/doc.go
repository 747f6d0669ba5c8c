// Package glob compiles wildcard patterns into anchored full-string
// matchers.
//
// The pattern language is deliberately small: '*' matches any run of
// characters, including the empty run; every other character matches
// itself literally. Characters that carry meaning in regular-expression
// syntax are escaped during compilation, so rule authors never need to
// think about the regexp engine underneath.
//
// Matching is always full-string. "corp.com" does not match
// "corp-com" (the dot is literal) and "OWNER" does not match
// "OWNERS" (implicit anchors at both ends).
package glob
