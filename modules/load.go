package modules

import (
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/application"
)

// BuiltInModules is the module set every binary loads. Order matters: the
// imports module resolves registry services during registration.
var BuiltInModules = []application.Module{
	registry.NewModule(),
	imports.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	return application.RegisterModules(app, externalModules...)
}
