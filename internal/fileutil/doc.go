// Package fileutil locates session bundles on disk.
//
// It is the single source of truth for bundle discovery in sessqc: every
// command that takes an animal folder finds its .sdb files through
// ScanBundles rather than globbing on its own.
//
// # Usage
//
// Bundle discovery in an animal folder:
//
//	result, err := fileutil.ScanBundles("/data/vgat24", true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, file := range result.Files {
//	    fmt.Println(file)
//	}
//
// # Behavior Notes
//
// Returned paths are absolute and sorted alphabetically, so output is
// deterministic across runs and platforms. The extension match is
// case-insensitive ("bundle.SDB" is found). Hidden directories such as
// .sessqc are skipped during recursive scans. Non-fatal errors, for example
// permission denied on a subdirectory, are collected in ScanResult.Errors
// and scanning continues; only a missing or non-directory root causes
// immediate failure.
package fileutil
