package nn

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// GCNPropagate applies symmetric-normalised neighbourhood aggregation with
// self-loops to the node matrix h (N×C).  Messages flow src[e] → dst[e].
//
//	deg[i]  = 1 + |{e : dst[e] = i}|
//	out[i]  = h[i]/deg[i] + Σ_{e: dst[e]=i} h[src[e]] / √(deg[src[e]]·deg[i])
func GCNPropagate(tp *Tape, h *Tensor, src, dst []int) *Tensor {
	n, c := h.Dims()
	deg := make([]float64, n)
	for i := range deg {
		deg[i] = 1
	}
	for _, d := range dst {
		deg[d]++
	}
	norm := make([]float64, len(src))
	for e := range src {
		norm[e] = 1 / math.Sqrt(deg[src[e]]*deg[dst[e]])
	}

	v := mat.NewDense(n, c, nil)
	for i := 0; i < n; i++ {
		orow := v.RawRowView(i)
		for j, val := range h.Value.RawRowView(i) {
			orow[j] = val / deg[i]
		}
	}
	for e := range src {
		orow := v.RawRowView(dst[e])
		for j, val := range h.Value.RawRowView(src[e]) {
			orow[j] += norm[e] * val
		}
	}

	tracked := tp.tracks(h)
	out := newResult(v, tracked)
	if tracked {
		tp.record(func() {
			if out.Grad == nil {
				return
			}
			dh := mat.NewDense(n, c, nil)
			for i := 0; i < n; i++ {
				drow := dh.RawRowView(i)
				for j, g := range out.Grad.RawRowView(i) {
					drow[j] = g / deg[i]
				}
			}
			for e := range src {
				drow := dh.RawRowView(src[e])
				for j, g := range out.Grad.RawRowView(dst[e]) {
					drow[j] += norm[e] * g
				}
			}
			h.accumulate(dh)
		})
	}
	return out
}

// gatEdges returns the edge list with existing self-loops removed and one
// self-loop per node appended.
func gatEdges(n int, src, dst []int) ([]int, []int) {
	s := make([]int, 0, len(src)+n)
	d := make([]int, 0, len(dst)+n)
	for e := range src {
		if src[e] == dst[e] {
			continue
		}
		s = append(s, src[e])
		d = append(d, dst[e])
	}
	for i := 0; i < n; i++ {
		s = append(s, i)
		d = append(d, i)
	}
	return s, d
}

// GATAttend computes multi-head additive attention over the node matrix h
// (N × heads·out, head k in columns [k·out, (k+1)·out)).  attSrc and attDst
// are heads×out.  For edge j→i and head k:
//
//	z     = LeakyReLU(⟨h_k[j], attSrc[k]⟩ + ⟨h_k[i], attDst[k]⟩, slope)
//	α     = softmax of z over the edges entering i (self-loop included)
//	out_k = Σ α · h_k[j]
//
// Head outputs are concatenated.
func GATAttend(tp *Tape, h, attSrc, attDst *Tensor, src, dst []int, heads, outDim int, slope float64) *Tensor {
	n, _ := h.Dims()
	s, d := gatEdges(n, src, dst)
	m := len(s)

	// per-node attention logits
	as := make([]float64, n*heads)
	ad := make([]float64, n*heads)
	for i := 0; i < n; i++ {
		row := h.Value.RawRowView(i)
		for k := 0; k < heads; k++ {
			hk := row[k*outDim : (k+1)*outDim]
			as[i*heads+k] = floats.Dot(hk, attSrc.Value.RawRowView(k))
			ad[i*heads+k] = floats.Dot(hk, attDst.Value.RawRowView(k))
		}
	}

	z := make([]float64, m*heads)
	alpha := make([]float64, m*heads)
	maxz := make([]float64, n*heads)
	for i := range maxz {
		maxz[i] = math.Inf(-1)
	}
	for e := 0; e < m; e++ {
		for k := 0; k < heads; k++ {
			raw := as[s[e]*heads+k] + ad[d[e]*heads+k]
			if raw < 0 {
				raw *= slope
			}
			z[e*heads+k] = raw
			if raw > maxz[d[e]*heads+k] {
				maxz[d[e]*heads+k] = raw
			}
		}
	}
	denom := make([]float64, n*heads)
	for e := 0; e < m; e++ {
		for k := 0; k < heads; k++ {
			x := math.Exp(z[e*heads+k] - maxz[d[e]*heads+k])
			alpha[e*heads+k] = x
			denom[d[e]*heads+k] += x
		}
	}
	for e := 0; e < m; e++ {
		for k := 0; k < heads; k++ {
			alpha[e*heads+k] /= denom[d[e]*heads+k]
		}
	}

	v := mat.NewDense(n, heads*outDim, nil)
	for e := 0; e < m; e++ {
		srow := h.Value.RawRowView(s[e])
		orow := v.RawRowView(d[e])
		for k := 0; k < heads; k++ {
			a := alpha[e*heads+k]
			for j := k * outDim; j < (k+1)*outDim; j++ {
				orow[j] += a * srow[j]
			}
		}
	}

	tracked := tp.tracks(h, attSrc, attDst)
	out := newResult(v, tracked)
	if !tracked {
		return out
	}
	tp.record(func() {
		if out.Grad == nil {
			return
		}
		dh := mat.NewDense(n, heads*outDim, nil)

		// dα for every edge, then Σ α·dα per target node
		da := make([]float64, m*heads)
		sumAD := make([]float64, n*heads)
		for e := 0; e < m; e++ {
			g := out.Grad.RawRowView(d[e])
			srow := h.Value.RawRowView(s[e])
			drow := dh.RawRowView(s[e])
			for k := 0; k < heads; k++ {
				a := alpha[e*heads+k]
				var acc float64
				for j := k * outDim; j < (k+1)*outDim; j++ {
					drow[j] += a * g[j]
					acc += g[j] * srow[j]
				}
				da[e*heads+k] = acc
				sumAD[d[e]*heads+k] += a * acc
			}
		}

		das := make([]float64, n*heads)
		dad := make([]float64, n*heads)
		for e := 0; e < m; e++ {
			for k := 0; k < heads; k++ {
				idx := e*heads + k
				ds := alpha[idx] * (da[idx] - sumAD[d[e]*heads+k])
				if z[idx] < 0 {
					ds *= slope
				}
				das[s[e]*heads+k] += ds
				dad[d[e]*heads+k] += ds
			}
		}

		dAttSrc := mat.NewDense(heads, outDim, nil)
		dAttDst := mat.NewDense(heads, outDim, nil)
		for i := 0; i < n; i++ {
			hrow := h.Value.RawRowView(i)
			drow := dh.RawRowView(i)
			for k := 0; k < heads; k++ {
				gs := das[i*heads+k]
				gd := dad[i*heads+k]
				srcAtt := attSrc.Value.RawRowView(k)
				dstAtt := attDst.Value.RawRowView(k)
				dsRow := dAttSrc.RawRowView(k)
				ddRow := dAttDst.RawRowView(k)
				for j := 0; j < outDim; j++ {
					col := k*outDim + j
					drow[col] += gs*srcAtt[j] + gd*dstAtt[j]
					dsRow[j] += gs * hrow[col]
					ddRow[j] += gd * hrow[col]
				}
			}
		}

		if h.requiresGrad {
			h.accumulate(dh)
		}
		if attSrc.requiresGrad {
			attSrc.accumulate(dAttSrc)
		}
		if attDst.requiresGrad {
			attDst.accumulate(dAttDst)
		}
	})
	return out
}

//Personal.AI order the ending
