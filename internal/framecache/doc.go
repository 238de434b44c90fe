// Package framecache memoizes frame signatures by (path, timestamp) in a
// bounded least-recently-used cache.
//
// The cache serves the interactive stepwise comparison path only. Long
// searches keep their own operation-scoped maps so a tight loop cannot evict
// entries another consumer still expects to find.
package framecache
