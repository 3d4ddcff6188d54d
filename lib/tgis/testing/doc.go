// Package testing provides a conformance test suite for tgis.IStore implementations.
//
// Every store implementation runs RunStoreTests from its own _test.go file with a
// factory that returns a fresh, empty store:
//
//	func Test(t *testing.T) {
//		tgistesting.RunStoreTests(t, "MemoryStore", func(t *testing.T) tgis.IStore {
//			return mstore.NewMemoryStore()
//		})
//	}
//
// The suite only uses selection predicates that every backend understands
// (comparisons on start_time and name joined with AND).
package testing
