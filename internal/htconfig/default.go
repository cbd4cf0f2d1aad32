package htconfig

// DefaultValues is the lowest configuration layer.
// Its keys are the complete set of accepted keys.
const DefaultValues = `
[Tree]
Hasher = "sha256"
LeafWorkers = 1
ParallelThreshold = 4096

[Input]
Format = "lines"

[Log]
Level = "info"
Format = "text"
`
