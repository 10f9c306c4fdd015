// Package agifytests contains the age prediction contract scenarios and their supporting API.
//
// Infrastructure that is not specific to the prediction API, such as running scenarios,
// filtering them and collecting results, is in the lower-level framework package.
package agifytests
