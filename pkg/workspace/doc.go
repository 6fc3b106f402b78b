// Package workspace serves stored workflow documents to the outer adapters.
//
// Every edit loads the document, applies one graph operation and saves it back;
// every run freezes the document and hands it to a fresh scheduler. Both happen
// under a per-workflow lock (optionally backed by a ports.DistributedLocker), so
// a workflow is never edited while it runs.
package workspace
