// Package drxtest contains utilities for testing
// code built on the drx package.
//
// [Recorder] is an Observer that captures a notification sequence
// and reports any breach of the notification contract.
// [TestObservableCompliance] is a reusable test suite
// that any finite, cold Observable implementation can run against itself.
package drxtest
