/*
 *	Copyright 2023 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package expansion

import (
	"fmt"

	"github.com/suryajasper/wave/graph"
)

// ExpansionMetadata is the per-request bookkeeping of one expansion step. It is
// created fresh for each (node, coordinate) request and discarded once the clone
// exists; the durable outcome (the clone's dim query and last-MMA flag) is written
// onto the clone itself.
type ExpansionMetadata struct {
	// DoNotExpand marks a coordinate-independent node passed through unchanged,
	// e.g. a scalar.
	DoNotExpand bool

	// DimQuery is the concrete replica coordinate this request represents.
	DimQuery *graph.DimMap

	// LastMMANode marks the terminal clone of an accumulation chain.
	LastMMANode bool

	// SourceDimQuery, NumQueries and QueryIndex track, while resolving a reshape,
	// which of several source coordinates the current argument corresponds to.
	SourceDimQuery *graph.DimMap
	NumQueries     int
	QueryIndex     int
}

// String implements fmt.Stringer.
func (m *ExpansionMetadata) String() string {
	return fmt.Sprintf("ExpansionMetadata(doNotExpand=%v, dimQuery=%s, lastMMA=%v, queries=%d/%d)",
		m.DoNotExpand, m.DimQuery, m.LastMMANode, m.QueryIndex, m.NumQueries)
}
