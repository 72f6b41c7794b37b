// Package metrics records generation metrics.
//
// Components take a Recorder and default to NoopRecorder, so nothing needs a
// nil check when metrics are disabled. PrometheusRecorder backs the recorder
// with a registry that can be written to a node-exporter textfile after each
// run or served over HTTP while watching.
package metrics
