// Package catalog defines the product source contract and the row record
// type. The sheets subpackage implements the contract against the Google
// Sheets values API.
package catalog
