package molecule

// Element describes one chemical element as far as SMILES perception needs it.
type Element struct {
	Symbol string
	Number int
	// Valences lists the default valence states used to derive implicit
	// hydrogens for organic-subset atoms.  Empty for elements that may only
	// appear in brackets.
	Valences []int
}

// elements is keyed by the canonical symbol (first letter upper case).
var elements = map[string]Element{
	"H":  {Symbol: "H", Number: 1, Valences: []int{1}},
	"He": {Symbol: "He", Number: 2},
	"Li": {Symbol: "Li", Number: 3},
	"Be": {Symbol: "Be", Number: 4},
	"B":  {Symbol: "B", Number: 5, Valences: []int{3}},
	"C":  {Symbol: "C", Number: 6, Valences: []int{4}},
	"N":  {Symbol: "N", Number: 7, Valences: []int{3, 5}},
	"O":  {Symbol: "O", Number: 8, Valences: []int{2}},
	"F":  {Symbol: "F", Number: 9, Valences: []int{1}},
	"Ne": {Symbol: "Ne", Number: 10},
	"Na": {Symbol: "Na", Number: 11},
	"Mg": {Symbol: "Mg", Number: 12},
	"Al": {Symbol: "Al", Number: 13},
	"Si": {Symbol: "Si", Number: 14},
	"P":  {Symbol: "P", Number: 15, Valences: []int{3, 5}},
	"S":  {Symbol: "S", Number: 16, Valences: []int{2, 4, 6}},
	"Cl": {Symbol: "Cl", Number: 17, Valences: []int{1}},
	"Ar": {Symbol: "Ar", Number: 18},
	"K":  {Symbol: "K", Number: 19},
	"Ca": {Symbol: "Ca", Number: 20},
	"Ti": {Symbol: "Ti", Number: 22},
	"Cr": {Symbol: "Cr", Number: 24},
	"Mn": {Symbol: "Mn", Number: 25},
	"Fe": {Symbol: "Fe", Number: 26},
	"Co": {Symbol: "Co", Number: 27},
	"Ni": {Symbol: "Ni", Number: 28},
	"Cu": {Symbol: "Cu", Number: 29},
	"Zn": {Symbol: "Zn", Number: 30},
	"Ga": {Symbol: "Ga", Number: 31},
	"Ge": {Symbol: "Ge", Number: 32},
	"As": {Symbol: "As", Number: 33},
	"Se": {Symbol: "Se", Number: 34},
	"Br": {Symbol: "Br", Number: 35, Valences: []int{1}},
	"Kr": {Symbol: "Kr", Number: 36},
	"Rb": {Symbol: "Rb", Number: 37},
	"Sr": {Symbol: "Sr", Number: 38},
	"Ag": {Symbol: "Ag", Number: 47},
	"Cd": {Symbol: "Cd", Number: 48},
	"Sn": {Symbol: "Sn", Number: 50},
	"Sb": {Symbol: "Sb", Number: 51},
	"Te": {Symbol: "Te", Number: 52},
	"I":  {Symbol: "I", Number: 53, Valences: []int{1}},
	"Xe": {Symbol: "Xe", Number: 54},
	"Cs": {Symbol: "Cs", Number: 55},
	"Ba": {Symbol: "Ba", Number: 56},
	"Pt": {Symbol: "Pt", Number: 78},
	"Au": {Symbol: "Au", Number: 79},
	"Hg": {Symbol: "Hg", Number: 80},
	"Tl": {Symbol: "Tl", Number: 81},
	"Pb": {Symbol: "Pb", Number: 82},
	"Bi": {Symbol: "Bi", Number: 83},
}

// LookupElement returns the element for a canonical symbol such as "Cl".
func LookupElement(symbol string) (Element, bool) {
	e, ok := elements[symbol]
	return e, ok
}

// organicSubset are the symbols allowed outside brackets.
var organicSubset = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true, "S": true,
	"F": true, "Cl": true, "Br": true, "I": true,
}

// aromaticSymbols maps lower-case aromatic symbols to their element.
var aromaticSymbols = map[string]string{
	"b": "B", "c": "C", "n": "N", "o": "O", "p": "P", "s": "S",
	"se": "Se", "as": "As",
}

//Personal.AI order the ending
