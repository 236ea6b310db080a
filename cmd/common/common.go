// Package common holds small helpers shared by the command-line drivers.
package common

import "strings"

// ExtractGraphName strips directory and extension from a graph file path,
// leaving a short name suitable for log lines and output file naming.
func ExtractGraphName(graphFilename string) (graphName string) {
	gNameMainT := strings.Split(graphFilename, "/")
	gNameMain := gNameMainT[len(gNameMainT)-1]
	gNameMainTD := strings.Split(gNameMain, ".")
	if len(gNameMainTD) > 1 {
		return gNameMainTD[len(gNameMainTD)-2]
	}
	return gNameMainTD[0]
}
