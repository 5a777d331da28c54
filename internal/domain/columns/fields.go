package columns

// Field is the canonical name of an anomaly attribute, independent of the
// header spelling used by a given export.
type Field string

const (
	FieldEquipmentCode        Field = "num_equipement"
	FieldSystem               Field = "systeme"
	FieldDescription          Field = "description"
	FieldDetectedAt           Field = "date_detection"
	FieldEquipmentDescription Field = "description_equipement"
	FieldSection              Field = "section_proprietaire"
	FieldReliability          Field = "fiabilite"
	FieldAvailability         Field = "disponibilite"
	FieldProcessSafety        Field = "process_safety"
	FieldCriticality          Field = "criticite"
)

// Column lists the header spellings accepted for one canonical field, in
// matching priority order.
type Column struct {
	Field   Field
	Headers []string
}

// DefaultColumns returns the expected columns of the anomaly export.
func DefaultColumns() []Column {
	return []Column{
		{Field: FieldEquipmentCode, Headers: []string{"Num_equipement", "Numéro équipement", "Equipment ID"}},
		{Field: FieldSystem, Headers: []string{"Systeme", "Système", "System"}},
		{Field: FieldDescription, Headers: []string{"Description", "Description de l'anomalie"}},
		{Field: FieldDetectedAt, Headers: []string{"Date de détéction de l'anomalie", "Date de détection", "Detection date"}},
		{Field: FieldEquipmentDescription, Headers: []string{"Description de l'équipement", "Description equipement", "Equipment description"}},
		{Field: FieldSection, Headers: []string{"Section propriétaire", "Section proprietaire", "Owning section"}},
		{Field: FieldReliability, Headers: []string{"Fiabilité Intégrité", "Fiabilité", "Reliability"}},
		{Field: FieldAvailability, Headers: []string{"Disponibilté", "Disponibilité", "Availability"}},
		{Field: FieldProcessSafety, Headers: []string{"Process Safety", "Sécurité procédé"}},
		{Field: FieldCriticality, Headers: []string{"Criticité", "Criticality"}},
	}
}

// Positions maps canonical fields to fixed column indices, used when a stored
// row carries its full ordered values but only a partial header mapping.
type Positions map[Field]int

// DefaultPositions follows the column order of the reference export.
func DefaultPositions() Positions {
	return Positions{
		FieldEquipmentCode:        0,
		FieldDetectedAt:           3,
		FieldEquipmentDescription: 4,
		FieldSection:              5,
		FieldReliability:          6,
		FieldAvailability:         7,
		FieldProcessSafety:        8,
		FieldCriticality:          9,
	}
}

// Lookup returns the fallback value of field within values. It returns nil
// when the field has no configured position, the row is too short, or the
// cell is null-like.
func (p Positions) Lookup(values []string, field Field) *string {
	idx, ok := p[field]
	if !ok || idx < 0 || idx >= len(values) {
		return nil
	}
	return Clean(values[idx])
}
