// Package platform answers the memoized OS/distro/arch/shell/directory/PATH
// queries the rest of pulith needs to pick the right release asset and the
// right place to put it (spec.md §4.P), grounded on
// pulith-platform/src/{arch,dir,env,os,path,platform,shell}.rs. Every query
// here is pure with respect to a stable environment, so each is memoized
// with sync.OnceValue rather than re-read on every call.
package platform
