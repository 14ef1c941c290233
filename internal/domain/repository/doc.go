// Package repository define los modelos de dominio y los contratos de persistencia.
//
// Las implementaciones concretas viven en internal/store/pg. Los services de
// internal/http/services y el paquete internal/email dependen sólo de estas
// interfaces, lo que permite probarlos con repositorios en memoria.
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - "No existe" se reporta con ErrNotFound, nunca con (nil, nil)
//   - Violaciones de unicidad se reportan con ErrConflict
package repository
