package core

// Entity is an opaque handle into the world's component stores.
// The zero value never refers to a live entity.
type Entity uint64
