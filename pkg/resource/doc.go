// Package resource models entries in the cloud resource hierarchy and
// their ancestry.
//
// A resource is identified by a (type, id) pair. Its position in the
// ownership tree is carried in its full name, a slash-delimited path of
// type/id segments from the hierarchy root down to the resource itself,
// for example:
//
//	organization/660570133860/project/data-platform/bigquery/sales/
//
// Identity is a comparable value type so it can key maps directly; the
// rule book index relies on this.
package resource
