package models

// New rows start active unless the payload says otherwise.

func (d *Destination) SetDefaults()  { d.IsActive = true }
func (m *MusicTrack) SetDefaults()   { m.IsActive = true }
func (n *News) SetDefaults()         { n.IsActive = true }
func (b *BlogCategory) SetDefaults() { b.IsActive = true }
func (p *BlogPost) SetDefaults()     { p.IsActive = true }
func (s *HeroSlide) SetDefaults()    { s.IsActive = true }

func (w *NewsWidget) SetDefaults() {
	w.IsActive = true
	w.Position = "sidebar"
}

func (n *PartnerNotification) SetDefaults() {
	n.IsActive = true
	n.TargetScope = ScopePages
	n.ShowOnPages = PageSet{Home: true, Blog: true, News: true, Destinations: true}
}
