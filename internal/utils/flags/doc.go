// Package flags contains pflag helpers shared by the command surface:
// yes/no toggle flags and choice usage formatting.
package flags
