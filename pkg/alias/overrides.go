package alias

import "github.com/glorpus-work/hbpm/pkg/model"

// builtinOverrides covers plugins whose alias can neither be read from a schema nor
// captured by the extractor.
var builtinOverrides = map[string]model.AliasInfo{
	"homebridge-broadlink-rm":     {Alias: "BroadlinkRM", Type: "platform"},
	"homebridge-broadlink-rm-pro": {Alias: "BroadlinkRM", Type: "platform"},
	"homebridge-cmdswitch2":       {Alias: "cmdSwitch2", Type: "platform"},
	"homebridge-dummy":            {Alias: "DummySwitch", Type: "accessory"},
	"homebridge-hue":              {Alias: "Hue", Type: "platform"},
	"homebridge-zp":               {Alias: "ZP", Type: "platform"},
}
