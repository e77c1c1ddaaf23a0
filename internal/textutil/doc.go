// Package textutil provides filename sanitization for staged assets.
//
// Source platforms return user-supplied filenames in Content-Disposition
// headers; sanitization keeps those names safe to create under the staging
// directory.
package textutil
