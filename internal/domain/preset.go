package domain

type PresetType string

const (
	PresetQuick    PresetType = "quick"
	PresetStandard PresetType = "standard"
	PresetThorough PresetType = "thorough"
)

func (p PresetType) IsValid() bool {
	switch p {
	case PresetQuick, PresetStandard, PresetThorough:
		return true
	}
	return false
}

func (p PresetType) String() string { return string(p) }

// Preset - бюджет цикла доработки
type Preset struct {
	Type             PresetType
	MaxIterations    int
	QualityThreshold float64
	TimeoutSeconds   int
}

func (p Preset) Validate() error {
	if !p.Type.IsValid() {
		return ErrInvalidPresetType
	}
	if p.MaxIterations < 1 || p.MaxIterations > 20 {
		return ErrInvalidMaxIterations
	}
	if p.QualityThreshold <= 0 || p.QualityThreshold >= 1 {
		return ErrInvalidThreshold
	}
	if p.TimeoutSeconds < 1 {
		return ErrInvalidTimeoutSeconds
	}
	return nil
}

// Предустановленные бюджеты

func QuickPreset() Preset {
	return Preset{
		Type:             PresetQuick,
		MaxIterations:    2,
		QualityThreshold: 0.80,
		TimeoutSeconds:   60,
	}
}

func StandardPreset() Preset {
	return Preset{
		Type:             PresetStandard,
		MaxIterations:    5,
		QualityThreshold: 0.90,
		TimeoutSeconds:   300,
	}
}

func ThoroughPreset() Preset {
	return Preset{
		Type:             PresetThorough,
		MaxIterations:    8,
		QualityThreshold: 0.95,
		TimeoutSeconds:   600,
	}
}

func PresetFor(t PresetType) (Preset, error) {
	switch t {
	case PresetQuick:
		return QuickPreset(), nil
	case PresetStandard:
		return StandardPreset(), nil
	case PresetThorough:
		return ThoroughPreset(), nil
	}
	return Preset{}, ErrInvalidPresetType
}
