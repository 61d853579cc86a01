// meta/meta.go
package meta

// ITERATIONS defines the number of iterations per search.
const ITERATIONS = 1000

// EXPLORATION defines the UCT exploration constant.
const EXPLORATION = 1.4

// WITH_CUTOFF defines the cutoff value for rollouts.
const WITH_CUTOFF = 100

// MAX_STEPS defines the step limit of an episode.
const MAX_STEPS = 100

// STRATEGY defines the search driver.
const STRATEGY = "incremental"

// LAKE defines the FrozenLake preset.
const LAKE = "4x4"

// SEED defines the default random seed.
const SEED = 2
