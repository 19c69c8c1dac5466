package studyfile

import logx "studyplan/pkg/logx"

func logxNop() logx.Logger { return logx.Nop() }
