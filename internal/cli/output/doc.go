// Package output renders command results for fitplan-cli.
//
//   - formatter.go: Formatter interface, format parsing
//   - table.go: aligned tables, with reflection for plain structs
//   - json.go, yaml.go: machine-readable output
//   - spinner.go: progress animation for slow calls such as plan generation
//
// Tables are for people; json and yaml keep the wire field names so output
// can be piped into other tools.
package output
