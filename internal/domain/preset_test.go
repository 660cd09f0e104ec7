package domain

import "testing"

func TestPresetType_IsValid(t *testing.T) {
	tests := []struct {
		name       string
		presetType PresetType
		want       bool
	}{
		{
			name:       "quick is valid",
			presetType: "quick",
			want:       true,
		},
		{
			name:       "standard is valid",
			presetType: "standard",
			want:       true,
		},
		{
			name:       "thorough is valid",
			presetType: "thorough",
			want:       true,
		},
		{
			name:       "empty is invalid",
			presetType: "",
			want:       false,
		},
		{
			name:       "deep is invalid",
			presetType: "deep",
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.presetType.IsValid(); got != tt.want {
				t.Errorf("PresetType.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPreset_Validate(t *testing.T) {
	tests := []struct {
		name    string
		preset  Preset
		wantErr bool
	}{
		{
			name: "standard preset is valid",
			preset: Preset{
				Type:             PresetStandard,
				MaxIterations:    5,
				QualityThreshold: 0.9,
				TimeoutSeconds:   300,
			},
			wantErr: false,
		},
		{
			name: "zero iterations is invalid",
			preset: Preset{
				Type:             PresetQuick,
				MaxIterations:    0,
				QualityThreshold: 0.8,
				TimeoutSeconds:   60,
			},
			wantErr: true,
		},
		{
			name: "too many iterations is invalid",
			preset: Preset{
				Type:             PresetThorough,
				MaxIterations:    100,
				QualityThreshold: 0.95,
				TimeoutSeconds:   600,
			},
			wantErr: true,
		},
		{
			name: "zero threshold is invalid",
			preset: Preset{
				Type:             PresetQuick,
				MaxIterations:    2,
				QualityThreshold: 0,
				TimeoutSeconds:   60,
			},
			wantErr: true,
		},
		{
			name: "threshold of one is invalid",
			preset: Preset{
				Type:             PresetQuick,
				MaxIterations:    2,
				QualityThreshold: 1.0,
				TimeoutSeconds:   60,
			},
			wantErr: true,
		},
		{
			name: "zero timeout is invalid",
			preset: Preset{
				Type:             PresetQuick,
				MaxIterations:    2,
				QualityThreshold: 0.8,
				TimeoutSeconds:   0,
			},
			wantErr: true,
		},
		{
			name: "unknown preset type",
			preset: Preset{
				Type:             "ultra",
				MaxIterations:    2,
				QualityThreshold: 0.8,
				TimeoutSeconds:   60,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.preset.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Preset.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQuickPreset(t *testing.T) {
	p := QuickPreset()

	if p.Type != PresetQuick {
		t.Errorf("QuickPreset().Type = %v, want %v", p.Type, PresetQuick)
	}
	if p.MaxIterations != 2 {
		t.Errorf("QuickPreset().MaxIterations = %v, want %v", p.MaxIterations, 2)
	}
	if p.QualityThreshold != 0.80 {
		t.Errorf("QuickPreset().QualityThreshold = %v, want %v", p.QualityThreshold, 0.80)
	}
	if p.TimeoutSeconds != 60 {
		t.Errorf("QuickPreset().TimeoutSeconds = %v, want %v", p.TimeoutSeconds, 60)
	}

	if err := p.Validate(); err != nil {
		t.Errorf("QuickPreset().Validate() = %v, want nil", err)
	}
}

func TestStandardPreset(t *testing.T) {
	p := StandardPreset()

	if p.Type != PresetStandard {
		t.Errorf("StandardPreset().Type = %v, want %v", p.Type, PresetStandard)
	}
	if p.MaxIterations != 5 {
		t.Errorf("StandardPreset().MaxIterations = %v, want %v", p.MaxIterations, 5)
	}
	if p.QualityThreshold != 0.90 {
		t.Errorf("StandardPreset().QualityThreshold = %v, want %v", p.QualityThreshold, 0.90)
	}
	if p.TimeoutSeconds != 300 {
		t.Errorf("StandardPreset().TimeoutSeconds = %v, want %v", p.TimeoutSeconds, 300)
	}

	if err := p.Validate(); err != nil {
		t.Errorf("StandardPreset().Validate() = %v, want nil", err)
	}
}

func TestThoroughPreset(t *testing.T) {
	p := ThoroughPreset()

	if p.Type != PresetThorough {
		t.Errorf("ThoroughPreset().Type = %v, want %v", p.Type, PresetThorough)
	}
	if p.MaxIterations != 8 {
		t.Errorf("ThoroughPreset().MaxIterations = %v, want %v", p.MaxIterations, 8)
	}
	if p.QualityThreshold != 0.95 {
		t.Errorf("ThoroughPreset().QualityThreshold = %v, want %v", p.QualityThreshold, 0.95)
	}
	if p.TimeoutSeconds != 600 {
		t.Errorf("ThoroughPreset().TimeoutSeconds = %v, want %v", p.TimeoutSeconds, 600)
	}

	if err := p.Validate(); err != nil {
		t.Errorf("ThoroughPreset().Validate() = %v, want nil", err)
	}
}

func TestPresetFor(t *testing.T) {
	tests := []struct {
		name       string
		presetType PresetType
		wantType   PresetType
		wantErr    bool
	}{
		{
			name:       "quick",
			presetType: PresetQuick,
			wantType:   PresetQuick,
		},
		{
			name:       "standard",
			presetType: PresetStandard,
			wantType:   PresetStandard,
		},
		{
			name:       "thorough",
			presetType: PresetThorough,
			wantType:   PresetThorough,
		},
		{
			name:       "unknown",
			presetType: "deep",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PresetFor(tt.presetType)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PresetFor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got.Type != tt.wantType {
				t.Errorf("PresetFor().Type = %v, want %v", got.Type, tt.wantType)
			}
		})
	}
}
