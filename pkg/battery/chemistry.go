package battery

// ChemistryUnknown labels chemistry codes outside the known set.
const ChemistryUnknown = "Unknown"

var chemistries = map[[4]byte]string{
	{'P', 'b', 'A', 'c'}: "Lead Acid",
	{'L', 'I', 'O', 'N'}: "Li-ion",
	{'L', 'i', '-', 'I'}: "Li-ion",
	{'N', 'i', 'C', 'd'}: "NiCad",
	{'N', 'i', 'M', 'H'}: "Ni-MH",
	{'N', 'i', 'Z', 'n'}: "NiZn",
	{'R', 'A', 'M', 0}:   "RAM (Rechargeable alkaline)",
}

// ChemistryLabel maps a raw chemistry code to a human label. The match is
// byte-exact; any other code yields ChemistryUnknown.
func ChemistryLabel(code [4]byte) string {
	if label, ok := chemistries[code]; ok {
		return label
	}
	return ChemistryUnknown
}
