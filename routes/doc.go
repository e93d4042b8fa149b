// Package routes classifies request paths into access categories using
// ordered prefix tables.
//
// # Classification
//
// A [Table] holds one path list per [Category]. Classification is
// first-match-wins over the fixed precedence Public > Auth > Admin >
// User; a path that matches nothing falls through to [CategoryDefault].
// Public is evaluated first so no later list can shadow a public path.
//
// # Matching
//
// A candidate matches a path when they are equal, or when the path
// starts with the candidate followed by a path separator. "/orders"
// therefore matches "/orders/123" but never "/ordersx". The root
// candidate "/" matches only the root path itself.
//
// # Architecture boundaries
//
// This package is a leaf: it knows nothing about sessions, cookies, or
// redirect targets. It never returns an error — every input string maps
// to exactly one category.
package routes
